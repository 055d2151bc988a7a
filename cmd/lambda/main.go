package main

import (
	"context"
	"log"
	"time"

	"crud-microservices/infrastructure/config"
	"crud-microservices/infrastructure/di"
	"crud-microservices/pkg/common"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda serves HTTP API (payload 2.0) events, chiLambdaV1 REST API events.
	chiLambda   *chiadapter.ChiLambdaV2
	chiLambdaV1 *chiadapter.ChiLambda

	container *di.Container

	// coldStart tracks whether this is a cold start invocation
	coldStart     = true
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The container lives as long as the execution environment, so its
	// cleanup is never run.
	container, _, err = di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	mux := chi.NewRouter()
	mux.Mount("/", container.Router.Setup())
	if cfg.PayloadVersion == "1.0" {
		chiLambdaV1 = chiadapter.New(mux)
	} else {
		chiLambda = chiadapter.NewV2(mux)
	}

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("payloadVersion", cfg.PayloadVersion),
	)
}

func coldStartHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		headers = make(map[string]string)
	}
	if coldStart {
		headers["X-Cold-Start"] = "true"
		headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		headers["X-Cold-Start"] = "false"
	}
	return headers
}

// Handler serves HTTP API events.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	ctx = common.WithRequestID(ctx, req.RequestContext.RequestID)
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	resp.Headers = coldStartHeaders(resp.Headers)
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	container.Logger.Info("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
	)
	return resp, err
}

// HandlerV1 serves REST API events.
func HandlerV1(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = common.WithRequestID(ctx, req.RequestContext.RequestID)
	resp, err := chiLambdaV1.ProxyWithContext(ctx, req)
	resp.Headers = coldStartHeaders(resp.Headers)
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	container.Logger.Info("Lambda response",
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
	)
	return resp, err
}

// main is the entry point for the Lambda function
func main() {
	if chiLambdaV1 != nil {
		lambda.Start(HandlerV1)
		return
	}
	lambda.Start(Handler)
}
