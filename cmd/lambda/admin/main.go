package main

import (
	"github.com/hightechgrafix/htg-shipping-tools/pkg/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

// Built once per execution environment and reused across warm invocations.
var connections = server.NewConnectionManager(server.EnvironmentBuilder(server.AdminEndpoints))

func main() {
	awslambda.Start(server.NewAPIGatewayHandler(connections))
}
