// Package patterns implements the five analytical queries the dashboard
// uses to surface suspicious drone activity: repeated appearances,
// coordinated/spatial clustering, pilot reuse, speed/altitude anomalies,
// and multi-kit triangulation. Each query reads through the same *sqlx.DB
// the collector writes through and never mutates state.
package patterns

import (
	"context"
	"sort"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// resultCap bounds every pattern query's result set absent explicit paging,
// matching the read-path default applied across the query engine.
const resultCap = 1000

// Queryer is the read-only surface patterns needs from storage; satisfied
// by *sqlx.DB (and so by *repository.DB, which embeds one).
type Queryer interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func severityRank(s schema.Severity) int {
	switch s {
	case schema.SeverityCritical:
		return 4
	case schema.SeverityHigh:
		return 3
	case schema.SeverityMedium:
		return 2
	default:
		return 1
	}
}

// union-find over a fixed number of points, used by both the
// coordinated-activity and pilot-proximity clustering passes.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[ra] = rb
	}
}

func capResults[T any](items []T) []T {
	if len(items) > resultCap {
		return items[:resultCap]
	}
	return items
}

func sortCoordinatedClusters(clusters []schema.CoordinatedCluster) {
	sort.Slice(clusters, func(i, j int) bool {
		si, sj := severityRank(clusters[i].Severity), severityRank(clusters[j].Severity)
		if si != sj {
			return si > sj
		}
		if len(clusters[i].DroneIDs) != len(clusters[j].DroneIDs) {
			return len(clusters[i].DroneIDs) > len(clusters[j].DroneIDs)
		}
		return clusters[i].ClusterTime.Before(clusters[j].ClusterTime)
	})
}

func sortAnomalies(findings []schema.AnomalyFinding) {
	sort.Slice(findings, func(i, j int) bool {
		si, sj := severityRank(findings[i].Severity), severityRank(findings[j].Severity)
		if si != sj {
			return si > sj
		}
		return findings[i].Time.After(findings[j].Time)
	})
}
