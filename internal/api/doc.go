// Package api contains the HTTP handlers for the public REST surface:
// account registration and login, profile management, and job application
// submission and tracking. Handlers translate between HTTP and the service
// layer; business rules live in the services.
package api
