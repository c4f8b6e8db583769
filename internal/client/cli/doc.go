// Package cli implements authctl, a command-line client of the gophauth
// service.
//
// Commands:
//
//	register <name> <email>   sign up, the password is prompted
//	verify <token>            confirm the emailed token
//	login <email>             log in and remember the access token
//	logout                    forget the access token
//	me                        show the logged in account
//	user <id>                 show another account (admins only)
//	ping                      check the server answers
//	health                    check the server reaches its database
package cli
