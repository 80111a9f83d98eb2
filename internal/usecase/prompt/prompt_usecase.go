package prompt

import (
	"context"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/repository"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/rs/zerolog/log"
)

// Generator is the AI collaborator that writes conversation prompts.
// Nil-able: when unavailable the fallback pool serves instead.
type Generator interface {
	GenerateConversationPrompt(ctx context.Context, interests1, interests2, used []string) (string, error)
}

// fallbackPrompts serves when the generator is down or exhausted.
var fallbackPrompts = []string{
	"What's the most spontaneous thing you've ever done?",
	"If you could live in any decade, which would you pick?",
	"What's a food you pretend to like but secretly don't?",
	"What would your perfect lazy Sunday look like?",
	"What's the best concert or show you've ever been to?",
	"If you won the lottery tomorrow, what's the first thing you'd do?",
	"What's a skill you've always wanted to learn?",
	"What's your most controversial food opinion?",
}

// UseCase hands out conversation prompts for an active call, caching
// everything served per room so nothing repeats. The cache is part of the
// room's auxiliary state and dies with the room.
type UseCase struct {
	rooms     store.RoomStore
	prompts   store.PromptStore
	broker    store.Broker
	profiles  repository.ProfileRepository
	generator Generator
}

func NewUseCase(
	rooms store.RoomStore,
	prompts store.PromptStore,
	broker store.Broker,
	profiles repository.ProfileRepository,
	generator Generator,
) *UseCase {
	return &UseCase{
		rooms:     rooms,
		prompts:   prompts,
		broker:    broker,
		profiles:  profiles,
		generator: generator,
	}
}

// NextPrompt generates a fresh prompt for the room and broadcasts it to
// both members.
func (uc *UseCase) NextPrompt(ctx context.Context, roomID, userID string) error {
	room, err := uc.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.HasUser(userID) {
		return domain.ErrNotRoomMember
	}

	used, err := uc.prompts.All(ctx, roomID)
	if err != nil {
		return err
	}

	text := uc.generate(ctx, room, used)
	if text == "" {
		// Every fallback already served; recycling is better than silence.
		text = fallbackPrompts[len(used)%len(fallbackPrompts)]
	}

	if err := uc.prompts.Add(ctx, roomID, text); err != nil {
		return err
	}

	ev, err := store.NewEvent("conversation-prompt", map[string]string{"prompt": text})
	if err != nil {
		return err
	}
	return uc.broker.PublishRoom(ctx, roomID, ev)
}

func (uc *UseCase) generate(ctx context.Context, room *domain.Room, used []string) string {
	if uc.generator != nil {
		interests1 := uc.interestsOf(ctx, room.User1)
		interests2 := uc.interestsOf(ctx, room.User2)
		text, err := uc.generator.GenerateConversationPrompt(ctx, interests1, interests2, used)
		if err == nil && text != "" {
			return text
		}
		log.Warn().Err(err).Str("room", room.ID).Msg("prompt generation failed, using fallback")
	}

	usedSet := make(map[string]struct{}, len(used))
	for _, p := range used {
		usedSet[p] = struct{}{}
	}
	for _, p := range fallbackPrompts {
		if _, ok := usedSet[p]; !ok {
			return p
		}
	}
	return ""
}

func (uc *UseCase) interestsOf(ctx context.Context, userID string) []string {
	profile, err := uc.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil
	}
	return profile.Interests
}
