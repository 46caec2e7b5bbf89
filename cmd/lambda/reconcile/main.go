package main

import (
	"github.com/hightechgrafix/htg-shipping-tools/pkg/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// Triggered by an EventBridge schedule
var connections = server.NewConnectionManager(server.EnvironmentBuilder(server.AdminEndpoints))

func main() {
	awslambda.Start(server.NewReconcileHandler(connections))
}
