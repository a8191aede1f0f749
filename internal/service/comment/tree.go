package comment

import (
	"github.com/google/uuid"

	"flowblog/internal/domain"
)

// BuildTree nests a flat list of comments under their parents. Roots and
// replies keep the order in which they appear in the input. Comments whose
// parent is missing from the input are dropped.
func BuildTree(comments []domain.Comment) []*domain.CommentNode {
	roots, _ := BuildTreeWithOrphans(comments)
	return roots
}

// BuildTreeWithOrphans is BuildTree but also returns the comments that could
// not be attached, in input order.
func BuildTreeWithOrphans(comments []domain.Comment) (roots, orphans []*domain.CommentNode) {
	roots = make([]*domain.CommentNode, 0)

	nodes := make(map[uuid.UUID]*domain.CommentNode, len(comments))
	ordered := make([]*domain.CommentNode, 0, len(comments))
	for _, c := range comments {
		if _, seen := nodes[c.ID]; seen {
			continue
		}
		node := &domain.CommentNode{Comment: c, Replies: make([]*domain.CommentNode, 0)}
		nodes[c.ID] = node
		ordered = append(ordered, node)
	}

	for _, node := range ordered {
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}

		parent, ok := nodes[*node.ParentID]
		if !ok || parent == node {
			orphans = append(orphans, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	return roots, orphans
}

// CountNodes returns the number of comments reachable from roots.
func CountNodes(roots []*domain.CommentNode) int {
	n := 0
	for _, r := range roots {
		n += 1 + CountNodes(r.Replies)
	}
	return n
}
