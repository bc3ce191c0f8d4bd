package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionPoll          = "poll_feed"
	ActionFetchSnapshot = "fetch_snapshot"
	ActionReconcile     = "reconcile"
	ActionBroadcast     = "broadcast_marker"
	ActionReadSBS       = "read_sbs"
	ActionIngest        = "ingest_message"
	ActionApplyMessage  = "apply_message"
)
