package types

// BusID 母线外部编号(可稀疏,不要求从零开始)
type BusID = int

// BusIndex 母线稠密索引,取值为 [0,N) 的一个排列
type BusIndex = int

// BranchID 支路外部编号
type BranchID = int

// BranchIndex 支路稠密索引(声明顺序)
type BranchIndex = int

// ElementID 并联元件外部编号(负荷、电源、并联补偿、储能)
type ElementID = int

// MeasurementID 量测外部编号
type MeasurementID = int
