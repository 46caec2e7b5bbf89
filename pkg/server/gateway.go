package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hightechgrafix/htg-shipping-tools/internal/models"
	"github.com/hightechgrafix/htg-shipping-tools/pkg/lambda"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// APIGatewayHandler is the signature registered with the Lambda runtime
type APIGatewayHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewAPIGatewayHandler adapts the dispatch pipeline to API Gateway proxy events.
// Initialization failures become a masked 500 so the next invocation can retry.
func NewAPIGatewayHandler(cm *ConnectionManager) APIGatewayHandler {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		container, err := cm.GetContainer(ctx)
		if err != nil {
			logrus.WithError(err).WithField("path", event.Path).Error("Failed to initialize container")
			return lambda.ToAPIGateway(serverError()), nil
		}

		req, err := lambda.FromAPIGateway(event)
		if err != nil {
			container.Logger.WithError(err).Warn("Failed to decode API Gateway event")
			return lambda.ToAPIGateway(lambda.NewJSONResponse(http.StatusBadRequest, []byte(`{"error":"Invalid request body"}`))), nil
		}

		return lambda.ToAPIGateway(container.API.Dispatch(ctx, req)), nil
	}
}

// ReconcileHandler is the signature of the scheduled reconcile function
type ReconcileHandler func(ctx context.Context, event events.CloudWatchEvent) (*models.ReconcileReport, error)

// NewReconcileHandler runs the admin reconciler on each scheduled event
func NewReconcileHandler(cm *ConnectionManager) ReconcileHandler {
	return func(ctx context.Context, event events.CloudWatchEvent) (*models.ReconcileReport, error) {
		container, err := cm.GetContainer(ctx)
		if err != nil {
			return nil, err
		}

		if container.Services.Reconciler == nil {
			return nil, fmt.Errorf("container built without the admin services")
		}

		report, err := container.Services.Reconciler.Reconcile(ctx)
		if err != nil {
			container.Logger.WithError(err).WithField("event_id", event.ID).Error("Admin reconcile failed")
			return nil, err
		}

		container.Logger.WithFields(logrus.Fields{
			"event_id": event.ID,
			"checked":  report.Checked,
			"removed":  report.Removed,
			"failed":   report.Failed,
		}).Info("Admin reconcile completed")
		return report, nil
	}
}

func serverError() *lambda.Response {
	return lambda.NewJSONResponse(http.StatusInternalServerError, []byte(`{"error":"Server error","code":"INTERNAL_ERROR"}`))
}
