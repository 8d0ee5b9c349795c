package swipe

import (
	"context"
	"fmt"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"go.uber.org/zap"
)

type IcebreakerCategory string

const (
	CategoryGeneral   IcebreakerCategory = "general"
	CategoryInterests IcebreakerCategory = "interests"
	CategoryProfile   IcebreakerCategory = "profile"
	CategoryQuestion  IcebreakerCategory = "question"
	CategoryGenerated IcebreakerCategory = "generated"
)

type Icebreaker struct {
	Text     string             `json:"text"`
	Category IcebreakerCategory `json:"category"`
}

// Icebreakers suggests opening lines from userID to a matched otherID.
// Generated lines come first when a generator is configured and answers.
func (uc *SwipeUseCase) Icebreakers(ctx context.Context, userID, otherID int) ([]Icebreaker, error) {
	if userID == otherID {
		return nil, &domain.ValidationError{Reason: "cannot match with own profile"}
	}

	me, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	other, err := uc.profileRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, err
	}

	matched, err := uc.IsMatched(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, domain.ErrNotMatched
	}

	suggestions := make([]Icebreaker, 0, 12)
	if uc.icebreakers != nil {
		lines, err := uc.icebreakers.GenerateIcebreakers(ctx, me.Interests, other.Interests)
		if err != nil {
			uc.logger.Warn("icebreaker generation failed, using templates",
				zap.Int("user_id", userID),
				zap.Int("other_user_id", otherID),
				zap.Error(err),
			)
		}
		for _, line := range lines {
			suggestions = append(suggestions, Icebreaker{Text: line, Category: CategoryGenerated})
		}
	}

	return append(suggestions, templateIcebreakers(me, other)...), nil
}

func templateIcebreakers(me, other *domain.Profile) []Icebreaker {
	out := []Icebreaker{
		{Text: fmt.Sprintf("Hey %s, nice to match with you! How's your day going?", other.DisplayName), Category: CategoryGeneral},
		{Text: "Hi there! I'm excited we matched. What made you like my profile?", Category: CategoryGeneral},
		{Text: fmt.Sprintf("Hey %s! If you could travel anywhere right now, where would you go?", other.DisplayName), Category: CategoryQuestion},
	}

	if label := other.LocationLabel(); label != "" {
		out = append(out, Icebreaker{
			Text:     fmt.Sprintf("I see you're from %s! What's your favorite local spot?", label),
			Category: CategoryProfile,
		})
	}

	if len(other.Interests) > 0 {
		for _, tag := range me.Interests {
			if other.HasInterest(tag) {
				out = append(out, Icebreaker{
					Text:     fmt.Sprintf("I noticed we both like %s! What's your favorite thing about it?", tag),
					Category: CategoryInterests,
				})
				break
			}
		}
		out = append(out, Icebreaker{
			Text:     fmt.Sprintf("I see you're into %s! What got you interested in that?", other.Interests[0]),
			Category: CategoryInterests,
		})
	}

	if other.Bio != nil && *other.Bio != "" {
		out = append(out, Icebreaker{Text: "I enjoyed reading your bio! Tell me more about yourself.", Category: CategoryProfile})
	}

	return append(out,
		Icebreaker{Text: "What's something you're really looking forward to this year?", Category: CategoryQuestion},
		Icebreaker{Text: "If you could have dinner with anyone, dead or alive, who would it be and why?", Category: CategoryQuestion},
		Icebreaker{Text: "What's one thing most people don't know about you?", Category: CategoryQuestion},
	)
}
