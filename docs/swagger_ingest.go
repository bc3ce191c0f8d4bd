package docs

// @title           Ingest Service API
// @version         1.0
// @description     Ingest service reads the dump1090 BaseStation stream and accepts position uploads from remote feeders. Messages are published to RabbitMQ.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3001
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a feeder token.
