package types

// 默认索引常量定义
const (
	NoBus    BusIndex    = -1 // 未连接母线
	NoBranch BranchIndex = -1 // 无关联支路
	NoRow                = -1 // 不占用支路导纳矩阵行
)

// 默认参数常量定义
var (
	Tolerance          = 1e-8  // 收敛容差
	MaxIterations      = 100   // 最大迭代次数
	DefaultAlgorithm   = WLS   // 默认状态估计算法
	DefaultSBaseMVA    = 1.0   // 默认系统基准容量(MVA)
	DefaultFrequencyHz = 50.0  // 默认系统频率(Hz)
	DefaultStdDev      = 0.1   // 合成量测默认标准差
	LPTolerance        = 1e-10 // 单纯形法最优性容差
)
