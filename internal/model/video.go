package model

import "time"

type VideoSessionRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required,uuid"`
}

// VideoToken is the credential handed to the client SDK to join a channel.
type VideoToken struct {
	Token       string    `json:"token"`
	ChannelName string    `json:"channel_name"`
	AppID       string    `json:"app_id"`
	UID         int       `json:"uid"`
	ExpiresAt   time.Time `json:"expires_at"`
}
