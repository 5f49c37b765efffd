package app

import (
	"time"

	"github.com/novaai/backend/internal/app/api/server"
	"github.com/novaai/backend/internal/app/service/billing"
	"github.com/novaai/backend/internal/app/service/oauthsession"
	"github.com/novaai/backend/internal/app/service/payment"
	"github.com/novaai/backend/internal/app/service/statistics"
	"github.com/novaai/backend/internal/app/service/usage"
	"github.com/novaai/backend/internal/app/service/user"
	"github.com/novaai/backend/internal/app/service/webhook"
	"github.com/novaai/backend/internal/app/service/webhooklog"
	"github.com/novaai/backend/internal/platform/db"
	"github.com/novaai/backend/internal/platform/firebaseauth"
	"github.com/novaai/backend/internal/platform/payments"
	"github.com/novaai/backend/pkg/config"
	"github.com/novaai/backend/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	payments.Module,
	firebaseauth.Module,
	server.Module,
	webhooklog.Module,
	webhook.Module,
	usage.Module,
	user.Module,
	oauthsession.Module,
	billing.Module,
	payment.Module,
	statistics.Module,
)
