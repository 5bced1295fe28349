// Package app holds the demo collaborators wired through the container:
// a router that delegates to a controller, both reporting through a notifier.
package app

import "go.uber.org/zap"

// INotify delivers a notification message.
type INotify interface {
	Send(message string)
}

// Notify writes notifications to the application log.
type Notify struct {
	log *zap.Logger
}

func NewNotify(log *zap.Logger) *Notify {
	log = log.Named("notify")
	log.Debug("Notify was instantiated")
	return &Notify{log: log}
}

func (n *Notify) Send(message string) {
	n.log.Info(message)
}
