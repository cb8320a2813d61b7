// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package pollerr defines the request-level error kinds shared by the store,
ledger, coordinator, and transport layers.

# Kinds

  - ErrInvalidPoll: malformed creation input
  - ErrInvalidOption: option index out of range
  - ErrPollNotFound: poll does not exist
  - ErrStorage: persistence failure (any *StorageError)

All kinds are recoverable: the operation is rejected, nothing is committed,
and only the initiating connection is told.

# Usage

	if err := store.Save(ctx, poll); err != nil {
		return pollerr.Storage("save poll", err)
	}

	switch pollerr.KindOf(err) {
	case pollerr.KindPollNotFound:
		// ...
	}

Message and HTTPStatus translate an error for the websocket and REST
surfaces respectively.
*/
package pollerr
