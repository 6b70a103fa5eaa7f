// Package graph 母线连通性分析:电气岛划分与平衡节点校验。
package graph

import (
	"fmt"
	"slices"
	"strings"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"powernet/network"
	"powernet/types"
)

// Graph 连接处理,只有投入的线路与变压器构成连通关系
type Graph struct {
	*simple.UndirectedGraph
	Islands [][]types.BusIndex // 电气岛,岛内母线升序,岛按首母线升序
	Island  []int              // 母线所属电气岛
}

// NewGraph 创建图
func NewGraph(net *network.Network) (*Graph, error) {
	graph := &Graph{}
	err := graph.Init(net)
	return graph, err
}

// Init 初始化
func (graph *Graph) Init(net *network.Network) error {
	if err := net.Validate(); err != nil {
		return err
	}
	graph.UndirectedGraph = simple.NewUndirectedGraph()
	for i := range net.Buses {
		graph.AddNode(simple.Node(i))
	}
	for _, b := range net.Branches {
		// SOP 不构成电气连接
		if !b.Closed || !b.IsAdmittance() || b.From == b.To {
			continue
		}
		graph.SetEdge(simple.Edge{F: simple.Node(b.From), T: simple.Node(b.To)})
	}
	graph.Islands = graph.Islands[:0]
	for _, comp := range topo.ConnectedComponents(graph.UndirectedGraph) {
		island := make([]types.BusIndex, 0, len(comp))
		for _, n := range comp {
			island = append(island, int(n.ID()))
		}
		slices.Sort(island)
		graph.Islands = append(graph.Islands, island)
	}
	slices.SortFunc(graph.Islands, func(a, b []types.BusIndex) int { return a[0] - b[0] })
	graph.Island = make([]int, len(net.Buses))
	for k, island := range graph.Islands {
		for _, i := range island {
			graph.Island[i] = k
		}
	}
	return nil
}

// Shifts 各母线相对所在电气岛平衡节点的累计移相角(rad)
//
// 自平衡节点沿投入支路广度优先传递,经移相变压器由首端到末端相角减少移相角。
// 无平衡节点的电气岛保持为零。
func (graph *Graph) Shifts(net *network.Network) []float64 {
	type pair struct{ from, to int64 }
	delta := map[pair]float64{}
	for _, b := range net.Branches {
		if !b.Closed || b.Kind != types.KindTransformer || b.Transformer.PhaseShiftDeg == 0 {
			continue
		}
		f, t := int64(b.From), int64(b.To)
		if _, ok := delta[pair{f, t}]; ok {
			continue
		}
		theta := types.Deg2Rad(b.Transformer.PhaseShiftDeg)
		delta[pair{f, t}], delta[pair{t, f}] = -theta, theta
	}
	shift := make([]float64, len(net.Buses))
	seen := make([]bool, len(net.Buses))
	walk := traverse.BreadthFirst{
		Traverse: func(e gonum.Edge) bool {
			u, v := e.From().ID(), e.To().ID()
			if seen[v] {
				u, v = v, u
			}
			if !seen[v] {
				seen[v] = true
				shift[v] = shift[u] + delta[pair{u, v}]
			}
			return true
		},
	}
	for _, bus := range net.Buses {
		if bus.Type != types.Slack || seen[bus.Index] {
			continue
		}
		seen[bus.Index] = true
		walk.Walk(graph.UndirectedGraph, simple.Node(bus.Index), nil)
		walk.Reset()
	}
	return shift
}

// CheckSlack 每个电气岛必须恰好有一个平衡节点
func (graph *Graph) CheckSlack(buses []*types.Bus) error {
	for _, island := range graph.Islands {
		var slack []string
		for _, i := range island {
			if buses[i].Type == types.Slack {
				slack = append(slack, buses[i].Label())
			}
		}
		switch len(slack) {
		case 1:
		case 0:
			return fmt.Errorf("island containing %s: %w", buses[island[0]].Label(), types.ErrNoSlack)
		default:
			return fmt.Errorf("%s are connected: %w", strings.Join(slack, ", "), types.ErrMultipleSlack)
		}
	}
	return nil
}
