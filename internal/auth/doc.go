// Package auth issues and checks the bearer tokens that guard the CamLink
// HTTP API.
//
// Tokens are HS256 JWTs carrying a subject and one of three roles:
// viewer (read), operator (read and send commands) and admin (also
// register devices). Role permissions are a static table. There is no
// user database; tokens are minted with "camlink token issue".
package auth
