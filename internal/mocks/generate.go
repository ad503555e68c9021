package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/gamelog --output domain/gamelog --outpkg gamelogmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Predictor --dir ../domain/projection --output domain/projection --outpkg projectionmock --filename predictor_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/seasonstats --output domain/seasonstats --outpkg seasonstatsmock --filename provider_mock.go
