// Package services implements the driving port interfaces.
// Services contain the core business logic - ingestion, retrieval and
// conversation orchestration - and translate collaborator failures into
// the domain error taxonomy before surfacing them to the UI layer.
package services
