package twofactor

import (
	"context"
	"time"
)

type Api interface {
	SteamTime() (time.Time, error)
	Offset() time.Duration
	AlignTime(ctx context.Context) error
	QueryTime(ctx context.Context) (*QueryTimeResponse, error)
}
