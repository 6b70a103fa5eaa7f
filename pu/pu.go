// Package pu 标幺值换算,所有函数只依赖系统基准容量。
package pu

import (
	"fmt"
	"math"
)

// Base 系统基准
type Base struct {
	SBaseMVA float64 // 基准容量(MVA)
}

// NewBase 创建基准,容量必须为正
func NewBase(sBaseMVA float64) (Base, error) {
	if !(sBaseMVA > 0) || math.IsInf(sBaseMVA, 0) {
		return Base{}, fmt.Errorf("pu: invalid base power %g MVA", sBaseMVA)
	}
	return Base{SBaseMVA: sBaseMVA}, nil
}

// ZBase 阻抗基准值(Ω)
func (b Base) ZBase(vnKV float64) float64 {
	return (vnKV * 1e3) * (vnKV * 1e3) / (b.SBaseMVA * 1e6)
}

// YBase 导纳基准值(S)
func (b Base) YBase(vnKV float64) float64 {
	return 1 / b.ZBase(vnKV)
}

// IBase 电流基准值(A),三相系统
func (b Base) IBase(vnKV float64) float64 {
	return b.SBaseMVA * 1e6 / (math.Sqrt(3) * vnKV * 1e3)
}

// MWToPU 功率有名值转标幺值,MW 与 MVAr 通用
func (b Base) MWToPU(mw float64) float64 { return mw / b.SBaseMVA }

// PUToMW 功率标幺值转有名值
func (b Base) PUToMW(pu float64) float64 { return pu * b.SBaseMVA }

// OhmToPU 阻抗有名值转标幺值
func (b Base) OhmToPU(ohm, vnKV float64) float64 { return ohm / b.ZBase(vnKV) }

// PUToOhm 阻抗标幺值转有名值
func (b Base) PUToOhm(pu, vnKV float64) float64 { return pu * b.ZBase(vnKV) }

// MhoToPU 导纳有名值转标幺值
func (b Base) MhoToPU(mho, vnKV float64) float64 { return mho / b.YBase(vnKV) }

// PUToMho 导纳标幺值转有名值
func (b Base) PUToMho(pu, vnKV float64) float64 { return pu * b.YBase(vnKV) }

// AmpereToPU 电流有名值转标幺值
func (b Base) AmpereToPU(a, vnKV float64) float64 { return a / b.IBase(vnKV) }

// PUToAmpere 电流标幺值转有名值
func (b Base) PUToAmpere(pu, vnKV float64) float64 { return pu * b.IBase(vnKV) }

// KVToPU 电压有名值转标幺值
func KVToPU(kv, vnKV float64) float64 {
	if vnKV == 0 {
		return 0
	}
	return kv / vnKV
}

// PUToKV 电压标幺值转有名值
func PUToKV(pu, vnKV float64) float64 { return pu * vnKV }

// ChangeBase 将设备自身基准下的阻抗标幺值换算到系统基准
func (b Base) ChangeBase(zPU, ratedSMVA, ratedKV, systemKV float64) float64 {
	return zPU * (b.SBaseMVA / ratedSMVA) * (ratedKV * ratedKV) / (systemKV * systemKV)
}
