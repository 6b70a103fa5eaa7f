package loadflow

import (
	"powernet/graph"
	"powernet/network"
	"powernet/pu"
	"powernet/types"
)

// Scheduled 母线计划注入功率(pu):电源与储能放电为正,负荷为负,SOP 由首端向末端转移有功
func Scheduled(net *network.Network) (p, q []float64) {
	n := net.N()
	p, q = make([]float64, n), make([]float64, n)
	base := net.Base
	for _, g := range net.Generations {
		p[g.Bus] += base.MWToPU(g.PMW)
	}
	for _, b := range net.Batteries {
		p[b.Bus] += base.MWToPU(b.Limited())
	}
	for _, l := range net.Loads {
		p[l.Bus] -= base.MWToPU(l.PMW)
		q[l.Bus] -= base.MWToPU(l.QMVAr)
	}
	for _, b := range net.Branches {
		if b.Kind != types.KindSOP || !b.Closed {
			continue
		}
		sop := b.SOP
		p[b.From] -= base.MWToPU(sop.PMW)
		q[b.From] += base.MWToPU(sop.QFromMVAr)
		p[b.To] += base.MWToPU(sop.PMW) * sop.Efficiency()
		q[b.To] += base.MWToPU(sop.QToMVAr)
	}
	return p, q
}

// Initial 初始电压:平衡节点与 PV 节点取设定值,其余母线幅值 1.0
//
// 非平衡节点相角取所在电气岛平衡节点相角,叠加沿途移相变压器的累计移相角。
func Initial(net *network.Network, g *graph.Graph) (vm, va []float64) {
	n := net.N()
	vm, va = make([]float64, n), make([]float64, n)
	for i := range vm {
		vm[i] = 1
	}
	// 机端电压设定补充未设定幅值的 PV 节点
	genKV := make([]float64, n)
	for _, gen := range net.Generations {
		if gen.VoltageKV > 0 {
			genKV[gen.Bus] = gen.VoltageKV
		}
	}
	shift := g.Shifts(net)
	slackAngle := make([]float64, len(g.Islands))
	for _, bus := range net.Buses {
		if bus.Type == types.Slack {
			_, slackAngle[g.Island[bus.Index]] = bus.Setpoint()
		}
	}
	for _, bus := range net.Buses {
		i := bus.Index
		switch bus.Type {
		case types.Slack:
			vm[i], va[i] = bus.Setpoint()
		case types.PV:
			vm[i], _ = bus.Setpoint()
			if bus.SetVoltagePU <= 0 && genKV[i] > 0 && bus.VoltageLevelKV > 0 {
				vm[i] = pu.KVToPU(genKV[i], bus.VoltageLevelKV)
			}
			va[i] = slackAngle[g.Island[i]] + shift[i]
		default:
			va[i] = slackAngle[g.Island[i]] + shift[i]
		}
	}
	return vm, va
}

// Partition 按潮流类型划分母线,返回 PV∪PQ 与 PQ 的升序索引
func Partition(buses []*types.Bus) (pvpq, pq []types.BusIndex) {
	for _, bus := range buses {
		switch bus.Type {
		case types.PQ:
			pvpq = append(pvpq, bus.Index)
			pq = append(pq, bus.Index)
		case types.PV:
			pvpq = append(pvpq, bus.Index)
		}
	}
	return pvpq, pq
}
