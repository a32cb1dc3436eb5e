// Package mention extracts user references from comment text, resolves them
// against workspace membership and decides who is notified about a comment.
package mention

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/domain"
)

var (
	bracketedMention = regexp.MustCompile(`@\[([0-9a-fA-F-]{36})\]`)
	inlineMention    = regexp.MustCompile(`@([0-9a-fA-F-]{8,36})\b`)
	canonicalUUID    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
)

// Selectors are the user references found in a comment body. Both sets hold
// lowercase strings in order of first appearance.
type Selectors struct {
	ExactIDs []string
	Prefixes []string
}

// Empty reports whether no reference was found.
func (s Selectors) Empty() bool {
	return len(s.ExactIDs) == 0 && len(s.Prefixes) == 0
}

// ExtractSelectors finds @[<uuid>] and inline @<token> references. Bracketed
// references count only when they hold a well-formed UUID. Inline tokens of
// 8 to 36 hex or hyphen characters are exact IDs when they form a UUID and ID
// prefixes otherwise.
func ExtractSelectors(body string) Selectors {
	var sel Selectors
	exact := map[string]bool{}
	prefix := map[string]bool{}

	addExact := func(id string) {
		if !exact[id] {
			exact[id] = true
			sel.ExactIDs = append(sel.ExactIDs, id)
		}
	}

	for _, m := range bracketedMention.FindAllStringSubmatch(body, -1) {
		candidate := strings.ToLower(m[1])
		if canonicalUUID.MatchString(candidate) {
			addExact(candidate)
		}
	}

	for _, m := range inlineMention.FindAllStringSubmatch(body, -1) {
		candidate := strings.ToLower(m[1])
		if canonicalUUID.MatchString(candidate) {
			addExact(candidate)
			continue
		}
		if len(candidate) >= 8 && !prefix[candidate] {
			prefix[candidate] = true
			sel.Prefixes = append(sel.Prefixes, candidate)
		}
	}

	return sel
}

// Resolve returns the members matched by sel, in member order. A member
// matches on an exact ID or, failing that, on the first prefix its lowercase
// ID starts with.
func Resolve(sel Selectors, members []domain.WorkspaceMember) []uuid.UUID {
	if sel.Empty() {
		return nil
	}

	exact := make(map[string]bool, len(sel.ExactIDs))
	for _, id := range sel.ExactIDs {
		exact[id] = true
	}

	var out []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, member := range members {
		if seen[member.UserID] {
			continue
		}
		id := strings.ToLower(member.UserID.String())
		matched := exact[id]
		if !matched {
			for _, p := range sel.Prefixes {
				if strings.HasPrefix(id, p) {
					matched = true
					break
				}
			}
		}
		if matched {
			seen[member.UserID] = true
			out = append(out, member.UserID)
		}
	}
	return out
}

// MemberLister reads workspace membership.
type MemberLister interface {
	ListWorkspaceMembers(ctx context.Context, workspaceID uuid.UUID) ([]domain.WorkspaceMember, error)
}

// ResolveMentioned returns the workspace members referenced in body, with the
// author removed. Membership is only read when body contains a selector.
func ResolveMentioned(
	ctx context.Context,
	members MemberLister,
	workspaceID uuid.UUID,
	body string,
	authorID uuid.UUID,
) ([]uuid.UUID, error) {
	sel := ExtractSelectors(body)
	if sel.Empty() {
		return nil, nil
	}

	list, err := members.ListWorkspaceMembers(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	resolved := Resolve(sel, list)
	out := resolved[:0]
	for _, id := range resolved {
		if id != authorID {
			out = append(out, id)
		}
	}
	return out, nil
}

// Recipient is one notification to send for a new comment.
type Recipient struct {
	UserID uuid.UUID
	Type   domain.NotificationType
}

// PlanCommentNotifications decides who hears about a comment. An assignee who
// is neither the author nor mentioned gets one notification first, typed
// mention when the body contains '@' at all and comment otherwise. Each
// mentioned user other than the author then gets a mention.
func PlanCommentNotifications(
	body string,
	authorID uuid.UUID,
	assigneeID *uuid.UUID,
	mentioned []uuid.UUID,
) []Recipient {
	isMentioned := make(map[uuid.UUID]bool, len(mentioned))
	for _, id := range mentioned {
		isMentioned[id] = true
	}

	var out []Recipient
	if assigneeID != nil && *assigneeID != authorID && !isMentioned[*assigneeID] {
		typ := domain.NotificationComment
		if strings.Contains(body, "@") {
			typ = domain.NotificationMention
		}
		out = append(out, Recipient{UserID: *assigneeID, Type: typ})
	}

	sent := map[uuid.UUID]bool{}
	for _, id := range mentioned {
		if id == authorID || sent[id] {
			continue
		}
		sent[id] = true
		out = append(out, Recipient{UserID: id, Type: domain.NotificationMention})
	}
	return out
}
