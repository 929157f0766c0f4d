// Package service provides application-level services for managing users,
// profiles, and job applications. Services own business rules and
// transaction boundaries; persistence is delegated to the store layer and
// background processing is requested through events.
package service
