package feed

import (
	"context"
	"errors"

	"github.com/midniteauto/backend/internal/events"
	"github.com/midniteauto/backend/internal/gateway"
	"github.com/midniteauto/backend/internal/social"
	"go.uber.org/zap"
)

// Toggles flip existence rows rather than counters, so a toggle pair is a
// no-op by construction. Callers apply their optimistic UI change before
// calling and treat these as fire-and-forget; the HTTP layer logs failures
// without surfacing them, and the next full feed reload restores truth.

// ToggleLike removes the like row when currentlyLiked, otherwise inserts one.
func (a *Aggregator) ToggleLike(ctx context.Context, userID, contentID string, contentType social.ContentType, currentlyLiked bool) error {
	if currentlyLiked {
		err := a.removeInteraction(ctx, "likes", &social.Like{}, userID, contentID, string(contentType))
		if err != nil {
			a.logger.Warn("toggle like failed", zap.String("content_id", contentID), zap.Error(err))
			return newServiceError(opToggleLike, "delete_failed", err)
		}
		return nil
	}
	like := social.Like{UserID: userID, ContentID: contentID, ContentType: contentType}
	if err := a.gw.Insert(ctx, &like); err != nil {
		a.logger.Warn("toggle like failed", zap.String("content_id", contentID), zap.Error(err))
		return newServiceError(opToggleLike, "insert_failed", err)
	}
	return nil
}

// ToggleSave removes the save row when currentlySaved, otherwise inserts one.
func (a *Aggregator) ToggleSave(ctx context.Context, userID, contentID string, contentType social.ContentType, currentlySaved bool) error {
	if currentlySaved {
		err := a.removeInteraction(ctx, "saves", &social.Save{}, userID, contentID, string(contentType))
		if err != nil {
			a.logger.Warn("toggle save failed", zap.String("content_id", contentID), zap.Error(err))
			return newServiceError(opToggleSave, "delete_failed", err)
		}
		return nil
	}
	save := social.Save{UserID: userID, ContentID: contentID, ContentType: contentType}
	if err := a.gw.Insert(ctx, &save); err != nil {
		a.logger.Warn("toggle save failed", zap.String("content_id", contentID), zap.Error(err))
		return newServiceError(opToggleSave, "insert_failed", err)
	}
	return nil
}

// ToggleJoinEvent removes the attendance row when currentlyJoined, otherwise
// inserts one.
func (a *Aggregator) ToggleJoinEvent(ctx context.Context, userID, eventID string, currentlyJoined bool) error {
	if currentlyJoined {
		var rsvp events.RSVP
		err := a.gw.From("event_attendees").
			Eq("event_id", eventID).
			Eq("user_id", userID).
			Single(ctx, &rsvp)
		if errors.Is(err, gateway.ErrRowNotFound) {
			return nil
		}
		if err == nil {
			err = a.gw.Delete(ctx, &events.RSVP{}, rsvp.ID)
		}
		if err != nil {
			a.logger.Warn("toggle join failed", zap.String("event_id", eventID), zap.Error(err))
			return newServiceError(opToggleJoin, "delete_failed", err)
		}
		return nil
	}
	rsvp := events.RSVP{EventID: eventID, UserID: userID}
	if err := a.gw.Insert(ctx, &rsvp); err != nil {
		a.logger.Warn("toggle join failed", zap.String("event_id", eventID), zap.Error(err))
		return newServiceError(opToggleJoin, "insert_failed", err)
	}
	return nil
}

// removeInteraction deletes the existence row matching (user, content, type).
// A row that is already gone is treated as removed.
func (a *Aggregator) removeInteraction(ctx context.Context, table string, model gateway.Row, userID, contentID, contentType string) error {
	type identified struct {
		ID string
	}
	var row identified
	err := a.gw.From(table).
		Select("id").
		Eq("user_id", userID).
		Eq("content_id", contentID).
		Eq("content_type", contentType).
		Single(ctx, &row)
	if errors.Is(err, gateway.ErrRowNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return a.gw.Delete(ctx, model, row.ID)
}
