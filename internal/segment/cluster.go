package segment

import (
	"math"
	"sort"
)

// dbscan1D clusters one-dimensional values with DBSCAN semantics at
// minSamples=1: every point is a core point, so clusters are exactly the
// eps-connected components of the sorted values. Labels follow input order;
// -1 marks noise (unreachable with minSamples=1, kept for symmetry with the
// general algorithm).
func dbscan1D(values []float64, eps float64) []int {
	n := len(values)
	labels := make([]int, n)
	if n == 0 {
		return labels
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return values[order[i]] < values[order[j]]
	})

	cluster := 0
	labels[order[0]] = 0
	for i := 1; i < n; i++ {
		prev, cur := order[i-1], order[i]
		if values[cur]-values[prev] > eps {
			cluster++
		}
		labels[cur] = cluster
	}
	return labels
}

// agglomerativeWard clusters one-dimensional values bottom-up with Ward
// linkage until k clusters remain. Naive pairwise merging; component counts
// per crop are small so the cubic cost is irrelevant.
func agglomerativeWard(values []float64, k int) []int {
	n := len(values)
	labels := make([]int, n)
	if n == 0 || k >= n {
		for i := range labels {
			labels[i] = i
		}
		return labels
	}
	if k < 1 {
		k = 1
	}

	type cluster struct {
		members []int
		sum     float64
	}

	clusters := make([]cluster, n)
	for i, v := range values {
		clusters[i] = cluster{members: []int{i}, sum: v}
	}

	// Ward increase for merging two 1-D clusters with means m1, m2:
	// (n1*n2 / (n1+n2)) * (m1-m2)^2
	wardCost := func(a, b cluster) float64 {
		na, nb := float64(len(a.members)), float64(len(b.members))
		d := a.sum/na - b.sum/nb
		return na * nb / (na + nb) * d * d
	}

	for len(clusters) > k {
		bestI, bestJ := 0, 1
		best := math.Inf(1)
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				if cost := wardCost(clusters[i], clusters[j]); cost < best {
					best = cost
					bestI, bestJ = i, j
				}
			}
		}
		merged := cluster{
			members: append(clusters[bestI].members, clusters[bestJ].members...),
			sum:     clusters[bestI].sum + clusters[bestJ].sum,
		}
		clusters[bestJ] = clusters[len(clusters)-1]
		clusters = clusters[:len(clusters)-1]
		clusters[bestI] = merged
	}

	for id, c := range clusters {
		for _, m := range c.members {
			labels[m] = id
		}
	}
	return labels
}
