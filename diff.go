package xamlai

// DiffResult represents the difference between two versions of a dictionary.
type DiffResult struct {
	// Added contains nodes whose key is new.
	Added []TextNode

	// Removed contains nodes whose key no longer exists.
	Removed []TextNode

	// Unchanged contains nodes present in both versions with the same text.
	Unchanged []TextNode

	// Modified contains nodes present in both versions whose text changed.
	Modified []ModifiedNode
}

// ModifiedNode represents a text node that was modified.
type ModifiedNode struct {
	Old TextNode
	New TextNode
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the non-empty nodes that are new or modified.
func (d *DiffResult) NeedsTranslation() []TextNode {
	result := make([]TextNode, 0, len(d.Added)+len(d.Modified))
	for _, n := range d.Added {
		if !n.IsEmpty() {
			result = append(result, n)
		}
	}
	for _, m := range d.Modified {
		if !m.New.IsEmpty() {
			result = append(result, m.New)
		}
	}
	return result
}

// DiffContent compares two node lists. Nodes are matched by their x:Key,
// or by position when they have none. Results follow document order.
func DiffContent(oldNodes, newNodes []TextNode) *DiffResult {
	result := &DiffResult{}

	oldByKey := make(map[string]TextNode, len(oldNodes))
	for _, node := range oldNodes {
		oldByKey[diffKey(node)] = node
	}
	newKeys := make(map[string]bool, len(newNodes))

	for _, node := range newNodes {
		key := diffKey(node)
		newKeys[key] = true

		old, exists := oldByKey[key]
		switch {
		case !exists:
			result.Added = append(result.Added, node)
		case old.Hash != node.Hash:
			result.Modified = append(result.Modified, ModifiedNode{Old: old, New: node})
		default:
			result.Unchanged = append(result.Unchanged, node)
		}
	}

	for _, node := range oldNodes {
		if !newKeys[diffKey(node)] {
			result.Removed = append(result.Removed, node)
		}
	}

	return result
}

func diffKey(node TextNode) string {
	if node.Key != "" {
		return "key:" + node.Key
	}
	return "id:" + node.ID
}
