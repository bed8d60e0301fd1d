// Package handbrake builds HandBrakeCLI command lines from profile settings.
package handbrake
