package domain

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotRoomMember    = errors.New("user is not a member of the room")
	ErrInviteNotFound   = errors.New("call invite not found")
	ErrInvalidMatchType = errors.New("invalid match type")
	ErrUserBanned       = errors.New("user is banned")
)
