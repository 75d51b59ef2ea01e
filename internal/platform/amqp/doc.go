// Package amqp publishes task notifications to RabbitMQ so other services
// can consume them. It is optional; the server runs without a broker.
package amqp
