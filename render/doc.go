// Package render produces approximate raster previews of document pages
// from the structural snapshot alone. Text runs are drawn with a fixed
// bitmap face at their extracted positions and colors, images are
// composited from their extracted payloads, and the page is scaled to
// the requested zoom. The output is a preview, not a faithful rendering;
// it exists so a browser can show where elements sit.
package render
