package docs

// @title           Aircraft API
// @version         1.0
// @description     API service serves the latest aircraft positions stored in PostgreSQL.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3003
// @BasePath  /
