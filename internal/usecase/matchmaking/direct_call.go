package matchmaking

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/google/uuid"
)

// InviteDirect creates a direct-call invite and notifies the callee on
// their user channel. The invite expires on its own if never answered.
func (uc *UseCase) InviteDirect(ctx context.Context, callerID, calleeID string, matchType domain.MatchType) (*store.DirectInvite, error) {
	if !matchType.Valid() {
		return nil, domain.ErrInvalidMatchType
	}
	callee, err := uc.users.GetByID(ctx, calleeID)
	if err != nil {
		return nil, err
	}
	if callee.IsBanned {
		return nil, domain.ErrUserBanned
	}

	invite := &store.DirectInvite{
		ID:        uuid.New().String(),
		CallerID:  callerID,
		CalleeID:  calleeID,
		MatchType: matchType,
	}
	if err := uc.invites.Save(ctx, invite, uc.inviteTTL); err != nil {
		return nil, err
	}

	ev, err := store.NewEvent("direct-call-invite", map[string]string{
		"inviteId": invite.ID,
		"callerId": callerID,
	})
	if err != nil {
		return nil, err
	}
	if err := uc.broker.PublishUser(ctx, calleeID, ev); err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptDirect turns a pending invite into a room, exactly like a queue
// pairing. Only the invited callee may accept. The callee check runs on a
// plain read so a stranger's attempt cannot consume the invite; the Take
// that follows is the atomic single-use claim, so concurrent accepts
// produce exactly one room.
func (uc *UseCase) AcceptDirect(ctx context.Context, calleeID, inviteID string) (*domain.Room, error) {
	invite, err := uc.invites.Load(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.CalleeID != calleeID {
		return nil, domain.ErrInviteNotFound
	}
	invite, err = uc.invites.Take(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	return uc.createRoom(ctx, invite.CallerID, invite.CalleeID, invite.MatchType)
}

// DeclineDirect drops the invite and tells the caller.
func (uc *UseCase) DeclineDirect(ctx context.Context, calleeID, inviteID string) error {
	invite, err := uc.invites.Load(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.CalleeID != calleeID {
		return domain.ErrInviteNotFound
	}
	if _, err := uc.invites.Take(ctx, inviteID); err != nil {
		return err
	}
	ev, err := store.NewEvent("direct-call-declined", map[string]string{"inviteId": inviteID})
	if err != nil {
		return err
	}
	return uc.broker.PublishUser(ctx, invite.CallerID, ev)
}
