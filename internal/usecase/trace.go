package usecase

import "github.com/fotisolgr/my-bet-app/internal/platform/tracing"

var usecaseTracer = tracing.New("my-bet-app/internal/usecase", "usecase.")
