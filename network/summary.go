package network

import (
	"fmt"
	"strings"

	"powernet/types"
)

// Summary 网络概况
func (net *Network) Summary() string {
	count := map[types.BranchKind]int{}
	for _, b := range net.Branches {
		count[b.Kind]++
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "System Properties\n")
	fmt.Fprintf(&sb, "-------------------------\n")
	fmt.Fprintf(&sb, "System Name: %s\n", net.Name)
	fmt.Fprintf(&sb, "Base MVA: %g MVA\n", net.Base.SBaseMVA)
	fmt.Fprintf(&sb, "System Frequency: %g Hz\n", net.FrequencyHz)
	fmt.Fprintf(&sb, "-------------------------\n")
	fmt.Fprintf(&sb, "Bus Elements\n")
	fmt.Fprintf(&sb, "- Number of Buses: %d\n", len(net.Buses))
	fmt.Fprintf(&sb, "- Number of Loads: %d\n", len(net.Loads))
	fmt.Fprintf(&sb, "- Number of Generations: %d\n", len(net.Generations))
	fmt.Fprintf(&sb, "- Number of Shunts: %d\n", len(net.Shunts))
	fmt.Fprintf(&sb, "- Number of Batteries: %d\n", len(net.Batteries))
	fmt.Fprintf(&sb, "-------------------------\n")
	fmt.Fprintf(&sb, "Branch Elements\n")
	fmt.Fprintf(&sb, "- Number of Lines: %d\n", count[types.KindLine])
	fmt.Fprintf(&sb, "- Number of Transformers: %d\n", count[types.KindTransformer])
	fmt.Fprintf(&sb, "- Number of SOPs: %d\n", count[types.KindSOP])
	fmt.Fprintf(&sb, "-------------------------\n")
	fmt.Fprintf(&sb, "Measurements: %d\n", len(net.Measurements))
	return sb.String()
}
