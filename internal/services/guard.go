package services

import (
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/response"
)

// The guard functions decide access without touching storage. Callers load
// the target first (so a missing entity reports NotFound before any
// permission error) and apply the decision before mutating.

// RequireCaller fails when the request carries no identity.
func RequireCaller(callerID string) error {
	if callerID == "" {
		return response.NewUnauthorized("Not authenticated")
	}
	return nil
}

func isOwner(p *models.Project, userID string) bool {
	return p.OwnerID == userID
}

func isMember(memberIDs []string, userID string) bool {
	for _, id := range memberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanReadProject allows the owner and members.
func CanReadProject(p *models.Project, memberIDs []string, callerID string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}
	if !isOwner(p, callerID) && !isMember(memberIDs, callerID) {
		return response.NewForbidden("Access denied")
	}
	return nil
}

// CanManageProject allows only the owner. action completes the message,
// e.g. "update project".
func CanManageProject(p *models.Project, callerID, action string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}
	if !isOwner(p, callerID) {
		return response.NewForbidden("Only owner can " + action)
	}
	return nil
}

// CanAddMember allows the owner and existing members to invite someone who
// is not yet a member.
func CanAddMember(p *models.Project, memberIDs []string, callerID, targetID string) error {
	if err := CanReadProject(p, memberIDs, callerID); err != nil {
		return err
	}
	if isOwner(p, targetID) || isMember(memberIDs, targetID) {
		return response.NewBadRequest("User is already a member")
	}
	return nil
}

// CanRemoveMember rejects removing the owner for any caller, then requires
// the caller to be the owner.
func CanRemoveMember(p *models.Project, callerID, targetID string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}
	if isOwner(p, targetID) {
		return response.NewBadRequest("Cannot remove project owner")
	}
	return CanManageProject(p, callerID, "remove members")
}

// CanEditComment allows only the author. action is "update" or "delete".
func CanEditComment(c *models.Comment, callerID, action string) error {
	if err := RequireCaller(callerID); err != nil {
		return err
	}
	if c.AuthorID != callerID {
		return response.NewForbidden("Only author can " + action + " comment")
	}
	return nil
}
