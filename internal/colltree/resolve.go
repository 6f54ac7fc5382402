// Package colltree 在容器树（调用方提供的只读快照）里解析目的路径。
//
// 解析是只读操作：绝不创建节点，绝不替用户在并列候选里挑一个。
// 状态三值：AUTO（唯一最优）、AMBIGUOUS（并列最优 ≥2）、UNRESOLVED（零候选）。
package colltree

import (
	"sort"
	"strings"

	"github.com/lime-pipeline/limenaming/internal/domain"
)

// Node 是容器树节点。调用方在每次解析时提供当前快照；
// 解析结果不保留对快照的引用。
type Node struct {
	Name     string
	Children []*Node
}

// 排序键：活跃分支内 ≻ 更浅 ≻ 大小写精确。数值越小越优。
type rank struct {
	outsideActive int
	depth         int
	caseLoose     int
}

func (r rank) less(o rank) bool {
	if r.outsideActive != o.outsideActive {
		return r.outsideActive < o.outsideActive
	}
	if r.depth != o.depth {
		return r.depth < o.depth
	}
	return r.caseLoose < o.caseLoose
}

type hit struct {
	path []string
	rank rank
}

// Resolve 在快照里找名字等于 candidate（规范化、大小写不敏感）的容器。
//
// 排名规则依次为：位于 activeBranch 子树内、路径更浅、名字大小写完全一致。
// 恰好一个最优 → AUTO；并列 ≥2 → AMBIGUOUS（候选全部返回，交调用方定夺）；
// 零命中 → UNRESOLVED（要不要新建、建在哪，都是调用方的事）。
func Resolve(candidate string, snapshot *Node, activeBranch []string) domain.Resolution {
	want := CanonicalNameKey(candidate)
	if want == "" || snapshot == nil {
		return domain.Resolution{Status: domain.ResolveUnresolved}
	}

	activeKey := make([]string, len(activeBranch))
	for i, seg := range activeBranch {
		activeKey[i] = CanonicalNameKey(seg)
	}

	var hits []hit
	var walk func(n *Node, path []string)
	walk = func(n *Node, path []string) {
		path = append(path, n.Name)
		if CanonicalNameKey(n.Name) == want {
			r := rank{depth: len(path) - 1}
			if !underBranch(path, activeKey) {
				r.outsideActive = 1
			}
			if strings.TrimSpace(n.Name) != strings.TrimSpace(candidate) {
				r.caseLoose = 1
			}
			hits = append(hits, hit{path: append([]string(nil), path...), rank: r})
		}
		for _, c := range n.Children {
			walk(c, path)
		}
	}
	walk(snapshot, nil)

	if len(hits) == 0 {
		return domain.Resolution{Status: domain.ResolveUnresolved}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank.less(hits[j].rank)
		}
		return strings.Join(hits[i].path, "/") < strings.Join(hits[j].path, "/")
	})

	res := domain.Resolution{Candidates: make([]domain.PathCandidate, 0, len(hits))}
	for _, h := range hits {
		res.Candidates = append(res.Candidates, domain.PathCandidate{
			Path:         h.path,
			Score:        score(h.rank),
			IsShotBranch: pathHasShot(h.path),
		})
	}

	top := hits[0].rank
	tied := 0
	for _, h := range hits {
		if h.rank == top {
			tied++
		}
	}
	if tied >= 2 {
		res.Status = domain.ResolveAmbiguous
		return res
	}
	res.Status = domain.ResolveAuto
	res.ChosenPath = hits[0].path
	return res
}

// score 把排序键折成一个报告用的分值（只用于展示，不参与排名）。
func score(r rank) float64 {
	s := 0.0
	if r.outsideActive == 0 {
		s += 4.0
	}
	if r.caseLoose == 0 {
		s += 0.5
	}
	s -= 0.2 * float64(r.depth)
	return s
}

// underBranch 判断路径是否落在活跃分支子树内（按规范键逐段比较）。
// 空分支视为"无提示"，一律算在内。
func underBranch(path []string, activeKey []string) bool {
	if len(activeKey) == 0 {
		return true
	}
	if len(path) < len(activeKey) {
		return false
	}
	for i, seg := range activeKey {
		if CanonicalNameKey(path[i]) != seg {
			return false
		}
	}
	return true
}

func pathHasShot(path []string) bool {
	for _, seg := range path {
		if IsShotName(seg) {
			return true
		}
	}
	return false
}
