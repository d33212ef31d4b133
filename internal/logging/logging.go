// Package logging owns zap logger construction so the rest of the code only
// ever receives a *zap.Logger.
package logging

import "go.uber.org/zap"

// New builds a logger for the given environment: human-readable output in
// development, JSON in anything else.
func New(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
