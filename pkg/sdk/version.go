package sdk

// Version is sent in the User-Agent header.
const Version = "0.4.0"
