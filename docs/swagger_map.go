package docs

// @title           Map Service API
// @version         1.0
// @description     Map service polls the aircraft snapshot, keeps one marker per aircraft and pushes marker changes to map clients over a WebSocket.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
