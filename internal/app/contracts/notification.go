package contracts

import "context"

type NotificationService interface {
	Notify(ctx context.Context, recipientID, event, message string, notificationContext map[string]string) error
}
