// Package domain contains the core business entities of the application:
// users, their profiles, and the job applications that move through the
// processing pipeline. It holds the status state machine and validation
// logic, independent of any specific infrastructure or delivery mechanism.
package domain
