package clasp

// Version of this build. Overwritten with the git tag by release
// builds, eg.
//
//   go build -ldflags "-X github.com/clasp-io/clasp.Version=$(git describe --tags)"
//
var Version = "development"
