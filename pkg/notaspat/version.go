package notaspat

// Version is the module version, bumped on release.
const Version = "1.3.0"
