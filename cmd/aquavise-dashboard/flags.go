package main

type flagType int
type flagMap map[flagType]string

const (
	listenAddress flagType = iota
	servicePort
	corsOrigins
	logLevel
	configurationFile

	dbType
	sqlitePath
	dbHost
	dbUser
	dbPassword
	dbPort
	dbName
	dbSSLMode

	enableMessaging
	randomSeed
)
