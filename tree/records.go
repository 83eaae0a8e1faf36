package tree

import (
	"go-hep.org/x/hep/groot/rtree"

	"github.com/hupe1980/mixgo/model"
)

// Tree names.
const (
	CandidateTree = "O2he3hadtable"
	CollisionTree = "O2he3hadmult"
	MixedTree     = "MixedTree"
)

type candidateRecord struct {
	PtHe3             float32 `groot:"fPtHe3"`
	EtaHe3            float32 `groot:"fEtaHe3"`
	PhiHe3            float32 `groot:"fPhiHe3"`
	DCAxyHe3          float32 `groot:"fDCAxyHe3"`
	DCAzHe3           float32 `groot:"fDCAzHe3"`
	SignalTPCHe3      float32 `groot:"fSignalTPCHe3"`
	InnerParamTPCHe3  float32 `groot:"fInnerParamTPCHe3"`
	MassTOFHe3        float32 `groot:"fMassTOFHe3"`
	NClsTPCHe3        uint8   `groot:"fNClsTPCHe3"`
	ItsClusterSizeHe3 uint32  `groot:"fItsClusterSizeHe3"`
	PIDtrkHe3         uint32  `groot:"fPIDtrkHe3"`
	SharedClustersHe3 uint8   `groot:"fSharedClustersHe3"`
	NSigmaTPCHe3      float32 `groot:"fNSigmaTPCHe3"`
	Chi2TPCHe3        float32 `groot:"fChi2TPCHe3"`

	PtHad             float32 `groot:"fPtHad"`
	EtaHad            float32 `groot:"fEtaHad"`
	PhiHad            float32 `groot:"fPhiHad"`
	DCAxyHad          float32 `groot:"fDCAxyHad"`
	DCAzHad           float32 `groot:"fDCAzHad"`
	SignalTPCHad      float32 `groot:"fSignalTPCHad"`
	InnerParamTPCHad  float32 `groot:"fInnerParamTPCHad"`
	MassTOFHad        float32 `groot:"fMassTOFHad"`
	ItsClusterSizeHad uint32  `groot:"fItsClusterSizeHad"`
	PIDtrkHad         uint32  `groot:"fPIDtrkHad"`
	SharedClustersHad uint8   `groot:"fSharedClustersHad"`
	NSigmaTPCHad      float32 `groot:"fNSigmaTPCHadPr"`
	NSigmaTOFHad      float32 `groot:"fNSigmaTOFHadPr"`
	Chi2TPCHad        float32 `groot:"fChi2TPCHad"`
}

func (r *candidateRecord) row() model.CandidateRow {
	return model.CandidateRow{
		He3: model.He3Candidate{
			Pt:             r.PtHe3,
			Eta:            r.EtaHe3,
			Phi:            r.PhiHe3,
			DCAxy:          r.DCAxyHe3,
			DCAz:           r.DCAzHe3,
			SignalTPC:      r.SignalTPCHe3,
			InnerParamTPC:  r.InnerParamTPCHe3,
			MassTOF:        r.MassTOFHe3,
			ITSClusterSize: r.ItsClusterSizeHe3,
			PIDTrk:         r.PIDtrkHe3,
			NClsTPC:        r.NClsTPCHe3,
			SharedClusters: r.SharedClustersHe3,
			NSigmaTPC:      r.NSigmaTPCHe3,
			Chi2TPC:        r.Chi2TPCHe3,
			CollisionID:    -1,
		},
		Hadron: model.HadronCandidate{
			Pt:             r.PtHad,
			Eta:            r.EtaHad,
			Phi:            r.PhiHad,
			DCAxy:          r.DCAxyHad,
			DCAz:           r.DCAzHad,
			SignalTPC:      r.SignalTPCHad,
			InnerParamTPC:  r.InnerParamTPCHad,
			MassTOF:        r.MassTOFHad,
			ITSClusterSize: r.ItsClusterSizeHad,
			PIDTrk:         r.PIDtrkHad,
			SharedClusters: r.SharedClustersHad,
			NSigmaTPC:      r.NSigmaTPCHad,
			NSigmaTOF:      r.NSigmaTOFHad,
			Chi2TPC:        r.Chi2TPCHad,
		},
	}
}

func (r *candidateRecord) setHe3(c *model.He3Candidate) {
	r.PtHe3 = c.Pt
	r.EtaHe3 = c.Eta
	r.PhiHe3 = c.Phi
	r.DCAxyHe3 = c.DCAxy
	r.DCAzHe3 = c.DCAz
	r.SignalTPCHe3 = c.SignalTPC
	r.InnerParamTPCHe3 = c.InnerParamTPC
	r.MassTOFHe3 = c.MassTOF
	r.NClsTPCHe3 = c.NClsTPC
	r.ItsClusterSizeHe3 = c.ITSClusterSize
	r.PIDtrkHe3 = c.PIDTrk
	r.SharedClustersHe3 = c.SharedClusters
	r.NSigmaTPCHe3 = c.NSigmaTPC
	r.Chi2TPCHe3 = c.Chi2TPC
}

func (r *candidateRecord) setHadron(c *model.HadronCandidate) {
	r.PtHad = c.Pt
	r.EtaHad = c.Eta
	r.PhiHad = c.Phi
	r.DCAxyHad = c.DCAxy
	r.DCAzHad = c.DCAz
	r.SignalTPCHad = c.SignalTPC
	r.InnerParamTPCHad = c.InnerParamTPC
	r.MassTOFHad = c.MassTOF
	r.ItsClusterSizeHad = c.ITSClusterSize
	r.PIDtrkHad = c.PIDTrk
	r.SharedClustersHad = c.SharedClusters
	r.NSigmaTPCHad = c.NSigmaTPC
	r.NSigmaTOFHad = c.NSigmaTOF
	r.Chi2TPCHad = c.Chi2TPC
}

type collisionRecord struct {
	ZVertex        float32 `groot:"fZVertex"`
	CentralityFT0C float32 `groot:"fCentralityFT0C"`
}

func (r *collisionRecord) collision() model.Collision {
	return model.Collision{Z: r.ZVertex, Centrality: r.CentralityFT0C}
}

// pairRecord is one MixedTree entry. The candidate branches keep the input
// names so that mixed and same-event trees can be analysed alike.
type pairRecord struct {
	cand candidateRecord

	ZVertex        float32
	CentralityFT0C float32
	Is23           bool
	InvMass        float32
	PLi4           float32
}

func (r *pairRecord) writeVars() []rtree.WriteVar {
	return append(rtree.WriteVarsFromStruct(&r.cand),
		rtree.WriteVar{Name: "fZVertex", Value: &r.ZVertex},
		rtree.WriteVar{Name: "fCentralityFT0C", Value: &r.CentralityFT0C},
		rtree.WriteVar{Name: "fIs23", Value: &r.Is23},
		rtree.WriteVar{Name: "fInvMass", Value: &r.InvMass},
		rtree.WriteVar{Name: "fPLi4", Value: &r.PLi4},
	)
}

func (r *pairRecord) readVars() []rtree.ReadVar {
	return append(rtree.ReadVarsFromStruct(&r.cand),
		rtree.ReadVar{Name: "fZVertex", Value: &r.ZVertex},
		rtree.ReadVar{Name: "fCentralityFT0C", Value: &r.CentralityFT0C},
		rtree.ReadVar{Name: "fIs23", Value: &r.Is23},
		rtree.ReadVar{Name: "fInvMass", Value: &r.InvMass},
		rtree.ReadVar{Name: "fPLi4", Value: &r.PLi4},
	)
}

func (r *pairRecord) set(p *model.Pair) {
	r.cand.setHe3(&p.He3)
	r.cand.setHadron(&p.Hadron)
	r.ZVertex = p.Z
	r.CentralityFT0C = p.Centrality
	r.Is23 = p.Is23
	r.InvMass = float32(p.InvMass)
	r.PLi4 = float32(p.P)
}

func (r *pairRecord) pair() model.Pair {
	row := r.cand.row()
	return model.Pair{
		He3:        row.He3,
		Hadron:     row.Hadron,
		Z:          r.ZVertex,
		Centrality: r.CentralityFT0C,
		Is23:       r.Is23,
		InvMass:    float64(r.InvMass),
		P:          float64(r.PLi4),
		Sign:       model.RelativeSign(row.He3.Pt, row.Hadron.Pt),
	}
}
