//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"SignalScan/pkg/config"
	"SignalScan/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application and
// its cleanup. Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCache,

		// Repositories
		ProvideBarSource,
		ProvideSignalStores,
		ProvideSnapshotStore,
		ProvideReportWriter,
		ProvidePublisher,
		ProvideNotifier,

		// Use cases
		ProvideDetectors,
		ProvideScreener,
		ProvideScreenRun,

		// HTTP
		ProvideDigestCache,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return nil, nil, nil
}
