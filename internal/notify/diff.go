package notify

// Diff describes how to turn the old list into the new one. Deletions
// index the old list; Insertions and Modifications index the new list.
type Diff struct {
	Deletions     []int
	Insertions    []int
	Modifications []int
}

func (d Diff) Empty() bool {
	return len(d.Deletions) == 0 && len(d.Insertions) == 0 && len(d.Modifications) == 0
}

// diffLists matches items by key along a longest common subsequence.
// Matched pairs whose values differ are reported as modifications.
func diffLists[T any](old, updated []T, key func(T) string, equal func(a, b T) bool) Diff {
	n, m := len(old), len(updated)
	oldKeys := make([]string, n)
	for i, v := range old {
		oldKeys[i] = key(v)
	}
	newKeys := make([]string, m)
	for j, v := range updated {
		newKeys[j] = key(v)
	}

	// lcs[i][j] is the LCS length of oldKeys[i:] and newKeys[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldKeys[i] == newKeys[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var d Diff
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case oldKeys[i] == newKeys[j]:
			if equal != nil && !equal(old[i], updated[j]) {
				d.Modifications = append(d.Modifications, j)
			}
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			d.Deletions = append(d.Deletions, i)
			i++
		default:
			d.Insertions = append(d.Insertions, j)
			j++
		}
	}
	for ; i < n; i++ {
		d.Deletions = append(d.Deletions, i)
	}
	for ; j < m; j++ {
		d.Insertions = append(d.Insertions, j)
	}
	return d
}
