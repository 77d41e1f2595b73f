package models

import (
	"time"
)

// Identity is a verified caller resolved from a bearer credential. UIDs are
// opaque subject identifiers issued by the auth provider.
type Identity struct {
	UID  string `json:"uid"`
	Name string `json:"name,omitempty"`
}

type Profile struct {
	UID            string     `json:"uid"`
	Username       string     `json:"username"`
	DefaultMessage string     `json:"defaultMessage"`
	CustomMessages []string   `json:"customMessages"`
	PushToken      *string    `json:"-"`
	Platform       string     `json:"platform,omitempty"`
	Friends        []Friend   `json:"friends"`
	MutedUsers     []string   `json:"mutedUsers"`
	LastUpdated    *time.Time `json:"lastUpdated,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Friend is one direction of a friendship edge as stored on a profile.
type Friend struct {
	UID   string `json:"uid"`
	Sound string `json:"sound"`
}

// FriendProfile is the public subset of a friend's profile returned to
// clients. Push tokens and mute lists never leave the server.
type FriendProfile struct {
	UID            string `json:"uid"`
	Username       string `json:"username"`
	DefaultMessage string `json:"defaultMessage"`
}
