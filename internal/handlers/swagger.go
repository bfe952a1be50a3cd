package handlers

// @title Slack Relay API
// @version 1.0
// @description A webhook relay service that forwards messages to Slack incoming webhooks
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/your-org/slack-relay-api
// @contact.email support@slack-relay-api.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @tag.name relay
// @tag.description Message relay operations

// @tag.name deliveries
// @tag.description Delivery journal and replay operations
