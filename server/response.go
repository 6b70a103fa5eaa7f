package server

import (
	"encoding/json"
	"math/cmplx"

	"powernet/estimation"
	"powernet/loadflow"
	"powernet/network"
	"powernet/pu"
	"powernet/types"
)

// BusState 母线结果
type BusState struct {
	ID       types.BusID `json:"bus_idx"`
	Name     string      `json:"bus_name"`
	VmPU     float64     `json:"vm_pu"`
	VmKV     float64     `json:"vm_kv"`
	VaDegree float64     `json:"va_degree"`
	PPU      *float64    `json:"p_pu,omitempty"`
	QPU      *float64    `json:"q_pu,omitempty"`
}

// FlowState 支路结果
type FlowState struct {
	ID    types.BranchID `json:"branch_idx"`
	Name  string         `json:"name"`
	PFrom float64        `json:"p_from_pu"`
	QFrom float64        `json:"q_from_pu"`
	PTo   float64        `json:"p_to_pu"`
	QTo   float64        `json:"q_to_pu"`
	PLoss float64        `json:"p_loss_pu"`
	QLoss float64        `json:"q_loss_pu"`
	SFrom float64        `json:"s_from_pu"`
}

// Response 求解结果
type Response struct {
	RunID      string          `json:"run_id"`
	Solver     string          `json:"solver"`
	Algorithm  string          `json:"algorithm"`
	Status     types.Status    `json:"status"`
	Error      string          `json:"error,omitempty"`
	Iterations int             `json:"iterations"`
	Residual   float64         `json:"residual"`
	Residuals  []float64       `json:"residuals"`
	Objective  *float64        `json:"objective,omitempty"`
	Buses      []BusState      `json:"buses"`
	Flows      []FlowState     `json:"flows,omitempty"`
	Debug      json.RawMessage `json:"debug,omitempty"`
}

func buses(net *network.Network, vm, va []float64) []BusState {
	out := make([]BusState, len(net.Buses))
	for i, bus := range net.Buses {
		out[i] = BusState{ID: bus.ID, Name: bus.Label(), VmPU: vm[i], VmKV: pu.PUToKV(vm[i], bus.VoltageLevelKV), VaDegree: types.Rad2Deg(va[i])}
	}
	return out
}

func flowResponse(net *network.Network, r *loadflow.Result) *Response {
	resp := &Response{
		RunID:      r.RunID.String(),
		Solver:     "loadflow",
		Algorithm:  "Newton-Raphson",
		Status:     r.Status,
		Iterations: r.Iterations,
		Residual:   r.Residual,
		Residuals:  r.Residuals,
		Buses:      buses(net, r.Vm, r.Va),
	}
	if err := r.Err(); err != nil {
		resp.Error = err.Error()
	}
	for i := range resp.Buses {
		p, q := real(r.Injection[i]), imag(r.Injection[i])
		resp.Buses[i].PPU, resp.Buses[i].QPU = &p, &q
	}
	for _, f := range r.Flows {
		loss := f.Loss()
		resp.Flows = append(resp.Flows, FlowState{
			ID:    net.Branches[f.Branch].ID,
			Name:  f.Name,
			PFrom: real(f.From),
			QFrom: imag(f.From),
			PTo:   real(f.To),
			QTo:   imag(f.To),
			PLoss: real(loss),
			QLoss: imag(loss),
			SFrom: cmplx.Abs(f.From),
		})
	}
	return resp
}

func estimateResponse(net *network.Network, r *estimation.Result) *Response {
	resp := &Response{
		RunID:      r.RunID.String(),
		Solver:     "estimation",
		Algorithm:  r.Algorithm.String(),
		Status:     r.Status,
		Iterations: r.Iterations,
		Residual:   r.Residual,
		Residuals:  r.Residuals,
		Objective:  &r.Objective,
		Buses:      buses(net, r.Vm, r.Va),
	}
	if err := r.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}
