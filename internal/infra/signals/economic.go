package signals

import (
	"math"

	"github.com/dotrep-network/dotrep/internal/domain"
)

// Economic dimension weights.
const (
	wStake       = 0.40
	wTxActivity  = 0.30
	wAccountAge  = 0.20
	wTxDiversity = 0.10
)

// Economic scores stake and transaction footprint. stake and diversity come
// from the resolved stake provider (graph-node values when no provider);
// ageDays comes from node metadata.
//
// The stake curve is logarithmic with saturation at 10,000 units:
// ln(1 + stake/1000) / ln(11), so the first thousand staked buys far more
// score than the tenth.
func Economic(gl *Globals, actor string, stake, txDiversity float64, ageDays int) domain.EconomicScores {
	snap := gl.Snapshot
	if _, ok := snap.Nodes[actor]; !ok {
		return domain.EconomicScores{}
	}

	degree := len(snap.Out[actor]) + len(snap.In[actor])

	e := domain.EconomicScores{
		TransactionActivity:  math.Min(1, float64(degree)/100),
		AccountAgeScore:      math.Min(1, float64(ageDays)/365),
		TransactionDiversity: clamp01(txDiversity),
	}
	if stake > 0 {
		e.StakeScore = math.Min(1, math.Log(1+stake/1000)/math.Log(11))
	}

	e.Combined = clamp01(
		e.StakeScore*wStake +
			e.TransactionActivity*wTxActivity +
			e.AccountAgeScore*wAccountAge +
			e.TransactionDiversity*wTxDiversity)
	return e
}
