// Package pitwall implements the account and team backend for the pitwall
// Formula One API: user registration with email confirmation, credential
// login with JWT issuance, and CRUD over the Team resource.
package pitwall
