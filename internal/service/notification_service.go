package service

import (
	"context"
	"fmt"

	"grievance-service/internal/messaging"
	"grievance-service/internal/model"

	"github.com/google/uuid"
)

type NotificationReader interface {
	ListForRecipients(ctx context.Context, recipients []string) ([]model.Notification, error)
	UnreadCount(ctx context.Context, recipients []string) (int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, recipients []string) error
	MarkAllAsRead(ctx context.Context, recipients []string) error
}

type NotificationService struct {
	store  NotificationReader
	sseHub *messaging.SSEHub
}

func NewNotificationService(store NotificationReader, sseHub *messaging.SSEHub) *NotificationService {
	return &NotificationService{
		store:  store,
		sseHub: sseHub,
	}
}

// Recipients lists every notification key a viewer reads: their own id and,
// for staff, the channel of their jurisdiction.
func Recipients(v model.Viewer) []string {
	var out []string
	if v.UserID != "" {
		out = append(out, v.UserID)
	}
	switch v.Role {
	case model.RoleOfficer:
		if v.Jurisdiction.City != "" {
			out = append(out, model.CityChannel(v.Jurisdiction.City))
		}
	case model.RoleAdmin:
		if v.Jurisdiction.State != "" {
			out = append(out, model.StateChannel(v.Jurisdiction.State))
		}
	}
	return out
}

func (s *NotificationService) List(ctx context.Context, viewer model.Viewer) (*model.NotificationListResponse, error) {
	recipients := Recipients(viewer)
	if len(recipients) == 0 {
		return &model.NotificationListResponse{Notifications: []model.Notification{}}, nil
	}

	notifications, err := s.store.ListForRecipients(ctx, recipients)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	unreadCount, err := s.store.UnreadCount(ctx, recipients)
	if err != nil {
		return nil, err
	}

	return &model.NotificationListResponse{
		Notifications: notifications,
		UnreadCount:   unreadCount,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, viewer model.Viewer, notificationIDStr string) error {
	notificationID, err := uuid.Parse(notificationIDStr)
	if err != nil {
		return fmt.Errorf("%w: notification id", model.ErrValidation)
	}
	return s.store.MarkAsRead(ctx, notificationID, Recipients(viewer))
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, viewer model.Viewer) error {
	recipients := Recipients(viewer)
	if len(recipients) == 0 {
		return nil
	}
	return s.store.MarkAllAsRead(ctx, recipients)
}

func (s *NotificationService) RegisterClient(viewer model.Viewer) *messaging.SSEClient {
	return s.sseHub.RegisterClient(Recipients(viewer))
}

func (s *NotificationService) UnregisterClient(client *messaging.SSEClient) {
	s.sseHub.UnregisterClient(client)
}
