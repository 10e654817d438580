// Package access gates content by user metadata tags.
package access

import (
	"strings"

	"github.com/samber/lo"

	"github.com/km-arc/simple-lms/app/content"
)

// Policy decides whether a user's tags satisfy an item's required tags.
type Policy struct{}

func NewPolicy() *Policy { return &Policy{} }

// CanAccess reports whether every required tag is among userTags. Tags are
// compared case-insensitively and surrounding blanks are ignored. An empty
// requirement is satisfied by anyone.
func (p *Policy) CanAccess(userTags, requiredTags []string) bool {
	required := normalize(requiredTags)
	if len(required) == 0 {
		return true
	}
	have := normalize(userTags)
	return lo.Every(have, required)
}

// Filter returns the items userTags may access, keeping their order.
func (p *Policy) Filter(userTags []string, items []content.Item) []content.Item {
	return lo.Filter(items, func(item content.Item, _ int) bool {
		return p.CanAccess(userTags, item.RequiredTags)
	})
}

func normalize(tags []string) []string {
	out := lo.FilterMap(tags, func(tag string, _ int) (string, bool) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		return tag, tag != ""
	})
	return lo.Uniq(out)
}
