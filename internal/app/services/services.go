// Package services holds the business logic behind the HTTP handlers and the
// allotctl commands.
//
// Services defined in this package:
// - RecordService: list, import, delete and look up student allotment records
// - AuthService: admin login
package services
