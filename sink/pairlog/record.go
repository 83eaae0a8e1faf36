package pairlog

import (
	"encoding/binary"

	"github.com/hupe1980/mixgo/model"
)

// record is the fixed-size little-endian encoding of a model.Pair.
type record struct {
	He3Pt, He3Eta, He3Phi, He3DCAxy, He3DCAz float32
	He3SignalTPC, He3InnerParamTPC           float32
	He3MassTOF                               float32
	He3ITSClusterSize, He3PIDTrk             uint32
	He3NClsTPC, He3SharedClusters            uint8
	He3NSigmaTPC, He3Chi2TPC                 float32
	He3CollisionID                           int32

	HadPt, HadEta, HadPhi, HadDCAxy, HadDCAz float32
	HadSignalTPC, HadInnerParamTPC           float32
	HadMassTOF                               float32
	HadITSClusterSize, HadPIDTrk             uint32
	HadSharedClusters                        uint8
	HadNSigmaTPC, HadNSigmaTOF, HadChi2TPC   float32
	HadZ, HadCentrality                      float32

	Z, Centrality float32
	Is23, Sign    uint8
	InvMass, P    float64
}

var (
	recordSize    = binary.Size(record{})
	maxBlockBytes = uint32(MaxBlockPairs * recordSize)
)

func fromPair(p *model.Pair) record {
	var is23 uint8
	if p.Is23 {
		is23 = 1
	}
	h, d := &p.He3, &p.Hadron
	return record{
		He3Pt: h.Pt, He3Eta: h.Eta, He3Phi: h.Phi, He3DCAxy: h.DCAxy, He3DCAz: h.DCAz,
		He3SignalTPC: h.SignalTPC, He3InnerParamTPC: h.InnerParamTPC, He3MassTOF: h.MassTOF,
		He3ITSClusterSize: h.ITSClusterSize, He3PIDTrk: h.PIDTrk,
		He3NClsTPC: h.NClsTPC, He3SharedClusters: h.SharedClusters,
		He3NSigmaTPC: h.NSigmaTPC, He3Chi2TPC: h.Chi2TPC,
		He3CollisionID: int32(h.CollisionID),

		HadPt: d.Pt, HadEta: d.Eta, HadPhi: d.Phi, HadDCAxy: d.DCAxy, HadDCAz: d.DCAz,
		HadSignalTPC: d.SignalTPC, HadInnerParamTPC: d.InnerParamTPC, HadMassTOF: d.MassTOF,
		HadITSClusterSize: d.ITSClusterSize, HadPIDTrk: d.PIDTrk,
		HadSharedClusters: d.SharedClusters,
		HadNSigmaTPC: d.NSigmaTPC, HadNSigmaTOF: d.NSigmaTOF, HadChi2TPC: d.Chi2TPC,
		HadZ: d.Z, HadCentrality: d.Centrality,

		Z: p.Z, Centrality: p.Centrality,
		Is23: is23, Sign: uint8(p.Sign),
		InvMass: p.InvMass, P: p.P,
	}
}

func (r *record) pair() model.Pair {
	return model.Pair{
		He3: model.He3Candidate{
			Pt: r.He3Pt, Eta: r.He3Eta, Phi: r.He3Phi, DCAxy: r.He3DCAxy, DCAz: r.He3DCAz,
			SignalTPC: r.He3SignalTPC, InnerParamTPC: r.He3InnerParamTPC, MassTOF: r.He3MassTOF,
			ITSClusterSize: r.He3ITSClusterSize, PIDTrk: r.He3PIDTrk,
			NClsTPC: r.He3NClsTPC, SharedClusters: r.He3SharedClusters,
			NSigmaTPC: r.He3NSigmaTPC, Chi2TPC: r.He3Chi2TPC,
			CollisionID: int(r.He3CollisionID),
		},
		Hadron: model.HadronCandidate{
			Pt: r.HadPt, Eta: r.HadEta, Phi: r.HadPhi, DCAxy: r.HadDCAxy, DCAz: r.HadDCAz,
			SignalTPC: r.HadSignalTPC, InnerParamTPC: r.HadInnerParamTPC, MassTOF: r.HadMassTOF,
			ITSClusterSize: r.HadITSClusterSize, PIDTrk: r.HadPIDTrk,
			SharedClusters: r.HadSharedClusters,
			NSigmaTPC: r.HadNSigmaTPC, NSigmaTOF: r.HadNSigmaTOF, Chi2TPC: r.HadChi2TPC,
			Z: r.HadZ, Centrality: r.HadCentrality,
		},
		Z:          r.Z,
		Centrality: r.Centrality,
		Is23:       r.Is23 != 0,
		InvMass:    r.InvMass,
		P:          r.P,
		Sign:       model.Sign(r.Sign),
	}
}
