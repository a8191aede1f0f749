package activity

import (
	"sort"

	"flowblog/internal/domain"
)

// Merge interleaves comments and likes into one feed, newest first. Items
// with equal timestamps keep comments ahead of likes, each in source order.
func Merge(comments []domain.Comment, reactions []domain.Reaction) []domain.ActivityItem {
	items := make([]domain.ActivityItem, 0, len(comments)+len(reactions))

	for _, c := range comments {
		text := c.Text
		items = append(items, domain.ActivityItem{
			Type:      domain.ActivityComment,
			ID:        c.ID,
			PostID:    c.PostID,
			ProfileID: c.ProfileID,
			Text:      &text,
			CreatedAt: c.CreatedAt,
			User:      c.User,
		})
	}

	for _, r := range reactions {
		items = append(items, domain.ActivityItem{
			Type:      domain.ActivityLike,
			ID:        r.ID,
			PostID:    r.PostID,
			ProfileID: r.ProfileID,
			CreatedAt: r.CreatedAt,
			User:      r.User,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items
}
