package provider

import "errors"

// ErrUnknownProvider is returned when a provider ID is not in the catalog.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrUnknownModel is returned when a model ID is not declared for a provider.
var ErrUnknownModel = errors.New("unknown model")

// ErrBadCredential is returned when a credential fails the shape check.
var ErrBadCredential = errors.New("credential too short")
