// Package rfc2616 implements the caching related parts of RFC 2616 (HTTP/1.1).
// Files are named after the sections they implement, and the RFC text is
// quoted inline with a leading "§".
package rfc2616
