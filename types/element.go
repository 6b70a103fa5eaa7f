package types

// Shunt 并联元件,直接计入导纳矩阵对角元
type Shunt struct {
	ID    ElementID // 外部编号
	Name  string    // 名称
	Bus   BusIndex  // 所在母线
	PMW   float64   // 有功(MW)
	QMVAr float64   // 无功(MVAr)
}

// Load 负荷
type Load struct {
	ID    ElementID // 外部编号
	Name  string    // 名称
	Bus   BusIndex  // 所在母线
	PMW   float64   // 有功(MW)
	QMVAr float64   // 无功(MVAr)
}

// Generation 电源
type Generation struct {
	ID        ElementID // 外部编号
	Name      string    // 名称
	Bus       BusIndex  // 所在母线
	PMW       float64   // 有功出力(MW)
	VoltageKV float64   // 机端电压设定(kV),0 表示沿用母线设定
}

// Battery 储能,PMW 为正表示放电
type Battery struct {
	ID              ElementID // 外部编号
	Name            string    // 名称
	Bus             BusIndex  // 所在母线
	PMW             float64   // 当前有功(MW)
	PChargeMaxMW    float64   // 最大充电功率(MW)
	PDischargeMaxMW float64   // 最大放电功率(MW)
	SOC             float64   // 荷电状态(0..1)
	CapacityMWh     float64   // 容量(MWh)
}

// Limited 返回按充放电上限截断后的有功
func (b *Battery) Limited() float64 {
	p := b.PMW
	if b.PDischargeMaxMW > 0 && p > b.PDischargeMaxMW {
		p = b.PDischargeMaxMW
	}
	if b.PChargeMaxMW > 0 && p < -b.PChargeMaxMW {
		p = -b.PChargeMaxMW
	}
	return p
}
