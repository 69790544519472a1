// Package gpu implements the render device on ebiten images. It is only
// built with the ebiten tag; without it the package is empty.
package gpu
