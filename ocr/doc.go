// Package ocr is the recognition surface used when a PDF page has no usable
// text layer. Engines receive PNG page renders and return plain text with
// word boxes; ocr/tesseract provides the default engine.
package ocr
